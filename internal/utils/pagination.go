// Package utils provides small, generic helper functions used across
// different layers of the application. These utilities are independent
// of domain or business logic.
package utils

import "strconv"

// maxPageSize caps the per-page size clients may request.
const maxPageSize = 100

// AtoiDefault converts a string to an int using strconv.Atoi.
// If the string is empty or cannot be parsed as an integer,
// it returns the provided default value instead.
//
// Example:
//
//	n := utils.AtoiDefault("42", 0) // returns 42
//	n = utils.AtoiDefault("", 10)   // returns 10
//	n = utils.AtoiDefault("x", 5)   // returns 5
func AtoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	return def
}

// ClampPageSize normalizes a requested page size: non-positive values fall
// back to def, and values above the global cap are clamped to it.
func ClampPageSize(size, def int) int {
	if size <= 0 {
		return def
	}
	if size > maxPageSize {
		return maxPageSize
	}
	return size
}

// TotalPages computes the number of pages needed for total rows at pageSize
// rows per page. A non-positive pageSize yields 0.
func TotalPages(total int64, pageSize int) int64 {
	if pageSize <= 0 {
		return 0
	}
	return (total + int64(pageSize) - 1) / int64(pageSize)
}
