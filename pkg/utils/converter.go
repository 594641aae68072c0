// Package utils provides utility functions for the gridrisk scoring service.
// This file contains data conversion, transformation, and formatting utilities.
package utils

import (
	"strings"
	"time"
)

// ================================================================================
// Date Conversion
// ================================================================================

// warehouseDateLayouts lists the date renderings found in the warehouse, most common first
var warehouseDateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
}

// ParseWarehouseDate parses a warehouse date string. Malformed or empty input
// yields nil rather than an error; callers treat nil as an unknown date.
func ParseWarehouseDate(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range warehouseDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u
		}
	}
	return nil
}

// ================================================================================
// Pointer Helpers
// ================================================================================

// Float64Ptr returns a pointer to f
func Float64Ptr(f float64) *float64 {
	return &f
}

// TimePtr returns a pointer to t
func TimePtr(t time.Time) *time.Time {
	return &t
}

// ================================================================================
// Slice Helpers
// ================================================================================

// RemoveDuplicates removes duplicate strings, keeping first occurrences in order
func RemoveDuplicates(slice []string) []string {
	seen := make(map[string]struct{}, len(slice))
	result := make([]string, 0, len(slice))
	for _, s := range slice {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		result = append(result, s)
	}
	return result
}

// ChunkSlice splits a slice into chunks of chunkSize
func ChunkSlice(slice []string, chunkSize int) [][]string {
	if chunkSize <= 0 {
		return [][]string{slice}
	}
	var chunks [][]string
	for i := 0; i < len(slice); i += chunkSize {
		end := i + chunkSize
		if end > len(slice) {
			end = len(slice)
		}
		chunks = append(chunks, slice[i:end])
	}
	return chunks
}

//Personal.AI order the ending
