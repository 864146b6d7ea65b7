// Package paginate splits ordered document line items into printable pages.
package paginate

// Layout constants of the print documents. Changing them changes the output
// of every existing document.
const (
	// LinesPerPage is the line budget of a line-item page.
	LinesPerPage = 50

	// ItemOverhead is the number of lines reserved per item for its heading
	// and spacing.
	ItemOverhead = 2
)

// Lines counts the lines of a description. Empty text has no lines and a
// trailing line break does not start a new line.
func Lines(text string) int {
	return len(SplitLines(text))
}

// SplitLines splits text at \r\n, \r and \n. The result has exactly
// Lines(text) elements.
func SplitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\r':
			lines = append(lines, text[start:i])
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			start = i + 1
		case '\n':
			lines = append(lines, text[start:i])
			start = i + 1
		}
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

// Cost returns the number of lines an item with the given description takes.
func Cost(description string) int {
	return Lines(description) + ItemOverhead
}

// Paginate distributes items over pages in a single forward pass. An item
// starts a new page when it does not fit into the remaining budget of a
// non-empty page. Items are never split or reordered, so an item larger than
// the budget occupies a page of its own.
func Paginate[T any](items []T, description func(T) string) [][]T {
	var pages [][]T
	used := 0
	for _, item := range items {
		cost := Cost(description(item))
		if len(pages) == 0 || (used > 0 && used+cost > LinesPerPage) {
			pages = append(pages, nil)
			used = 0
		}
		last := len(pages) - 1
		pages[last] = append(pages[last], item)
		used += cost
	}
	return pages
}
