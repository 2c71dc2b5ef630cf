package action

import (
	"fmt"
	"math"
)

// ColumnToNumber 列字母转列号（A=1, Z=26, AA=27）
func ColumnToNumber(letters string) (int, error) {
	if letters == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidColumn)
	}

	n := 0
	for i := 0; i < len(letters); i++ {
		c := letters[i]
		if c < 'A' || c > 'Z' {
			return 0, fmt.Errorf("%w: %q", ErrInvalidColumn, letters)
		}
		digit := int(c-'A') + 1
		if n > (math.MaxInt-digit)/26 {
			return 0, fmt.Errorf("%w: %q", ErrColumnOverflow, letters)
		}
		n = n*26 + digit
	}
	return n, nil
}

// NumberToColumn 列号转列字母，ColumnToNumber 的逆运算
func NumberToColumn(n int) (string, error) {
	if n < 1 {
		return "", fmt.Errorf("%w: %d", ErrInvalidColumn, n)
	}

	var buf [16]byte
	i := len(buf)
	for n > 0 {
		n--
		i--
		buf[i] = byte('A' + n%26)
		n /= 26
	}
	return string(buf[i:]), nil
}
