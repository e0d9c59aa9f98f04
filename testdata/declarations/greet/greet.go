package greet

import "strings"

// Hello greets name.
func Hello(name string) string {
	return "Hello, " + name
}

// Shout upper-cases text and repeats it times times.
func Shout(text string, times int) string {
	return strings.Repeat(strings.ToUpper(text), times)
}

// Words splits text on whitespace.
func Words(text string) []string {
	return strings.Fields(text)
}

func whisper(text string) string {
	return strings.ToLower(text)
}

// Pick returns the first item; generic functions are not imported.
func Pick[T any](items []T) T {
	return items[0]
}
