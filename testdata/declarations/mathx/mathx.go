package mathx

import "errors"

// Sum adds the numbers.
func Sum(nums ...int) int {
	total := 0
	for _, n := range nums {
		total += n
	}
	return total
}

// Divide divides a by b.
func Divide(a, b int) (int, error) {
	if b == 0 {
		return 0, errors.New("divide by zero")
	}
	return a / b, nil
}

// Positive reports whether n is above zero.
func Positive(n int) bool {
	return n > 0
}
