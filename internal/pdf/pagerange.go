package pdf

import (
	"fmt"
	"strconv"
	"strings"
)

// ParsePageRange parses a page range string like "1-5" or "1,3,5".
// An empty string yields nil, meaning all pages.
func ParsePageRange(pageRange string) ([]int, error) {
	if strings.TrimSpace(pageRange) == "" {
		return nil, nil
	}

	var pages []int
	for _, part := range strings.Split(pageRange, ",") {
		tokenPages, err := parseRangeToken(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		pages = append(pages, tokenPages...)
	}

	return pages, nil
}

// parseRangeToken parses either a single page token (e.g., "3") or a range token (e.g., "1-5").
func parseRangeToken(part string) ([]int, error) {
	if strings.Contains(part, "-") {
		rangeParts := strings.Split(part, "-")
		if len(rangeParts) != 2 {
			return nil, fmt.Errorf("invalid range format: %s", part)
		}
		start, err := strconv.Atoi(strings.TrimSpace(rangeParts[0]))
		if err != nil {
			return nil, fmt.Errorf("invalid start page: %s", rangeParts[0])
		}
		end, err := strconv.Atoi(strings.TrimSpace(rangeParts[1]))
		if err != nil {
			return nil, fmt.Errorf("invalid end page: %s", rangeParts[1])
		}
		if start < 1 {
			return nil, fmt.Errorf("page numbers start at 1, got %d", start)
		}
		if start > end {
			return nil, fmt.Errorf("start page %d greater than end page %d", start, end)
		}
		out := make([]int, 0, end-start+1)
		for i := start; i <= end; i++ {
			out = append(out, i)
		}
		return out, nil
	}

	page, err := strconv.Atoi(part)
	if err != nil {
		return nil, fmt.Errorf("invalid page number: %s", part)
	}
	if page < 1 {
		return nil, fmt.Errorf("page numbers start at 1, got %d", page)
	}
	return []int{page}, nil
}

// ClampPages drops page numbers beyond total. A nil selection means every page.
func ClampPages(pages []int, total int) []int {
	if pages == nil {
		all := make([]int, total)
		for i := range all {
			all[i] = i + 1
		}
		return all
	}

	out := make([]int, 0, len(pages))
	for _, p := range pages {
		if p >= 1 && p <= total {
			out = append(out, p)
		}
	}
	return out
}
