package utils

import (
	"strconv"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 12
)

// StringToInt converts string to int, returns 0 if error
func StringToInt(s string) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return i
}

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// ParsePage reads the page and limit query values. Out of range values fall
// back to the first page and the default size; the size is capped at MaxPageSize.
func ParsePage(page, limit string) Page {
	p := Page{Number: StringToInt(page), Size: StringToInt(limit)}
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// Slice returns the part of ids that falls on this page.
func (p Page) Slice(ids []string) []string {
	start := p.Offset()
	if start >= len(ids) {
		return []string{}
	}
	end := start + p.Size
	if end > len(ids) {
		end = len(ids)
	}
	return ids[start:end]
}
