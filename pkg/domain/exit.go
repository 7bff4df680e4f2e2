package domain

import "strings"

// Exit categories. Warning is a success-class category with a nonzero code,
// kept distinct so reporting can single it out.
const (
	CategorySuccess = "success"
	CategoryWarning = "warning"
	CategoryFailure = "failure"
)

// Exit colors (legacy reporting vocabulary).
const (
	ColorGreen  = "green"
	ColorYellow = "yellow"
	ColorRed    = "red"
)

// ExitClass is the terminal classification of a workflow run: a category,
// a free-text detail and the numeric process exit code it maps to.
type ExitClass struct {
	Category string
	Detail   string
	Code     int
}

// State renders the classification as an exit-state string ("success.done").
func (c ExitClass) State() string {
	if c.Category == "" {
		return ""
	}
	return c.Category + "." + c.Detail
}

// Color maps the category onto the legacy color vocabulary.
func (c ExitClass) Color() string {
	switch c.Category {
	case CategorySuccess:
		return ColorGreen
	case CategoryWarning:
		return ColorYellow
	case CategoryFailure:
		return ColorRed
	}
	return ""
}

// IsSuccess reports whether the class counts as a success for reporting.
// Warnings carry a nonzero code but still count as success.
func (c ExitClass) IsSuccess() bool {
	return c.Category == CategorySuccess || c.Category == CategoryWarning
}

// CategoryForCode maps a declared numeric exit code onto a category:
// 0 is success, 2 is warning, anything else is failure.
func CategoryForCode(code int) string {
	switch code {
	case 0:
		return CategorySuccess
	case 2:
		return CategoryWarning
	default:
		return CategoryFailure
	}
}

// CodeForCategory is the inverse of CategoryForCode.
func CodeForCategory(category string) int {
	switch category {
	case CategorySuccess:
		return 0
	case CategoryWarning:
		return 2
	default:
		return 1
	}
}

// ClassifyExitNode derives the classification from a nested exit node name.
// "exit.success.done" yields {success, done, 0}; deeper details keep their
// dots ("exit.failure.ssh.handshake" yields detail "ssh.handshake").
// A declared exit code, when present on the node, wins over the name.
func ClassifyExitNode(name string, declaredCode *int) ExitClass {
	trimmed := strings.TrimPrefix(name, ExitNodePrefix)
	category := CategorySuccess
	detail := trimmed
	if i := strings.Index(trimmed, "."); i >= 0 {
		category = trimmed[:i]
		detail = trimmed[i+1:]
	}
	switch category {
	case CategorySuccess, CategoryWarning, CategoryFailure:
	default:
		// Unknown category segment: treat the whole suffix as detail.
		category = CategorySuccess
		detail = trimmed
	}
	code := CodeForCategory(category)
	if declaredCode != nil {
		code = *declaredCode
		category = CategoryForCode(code)
	}
	return ExitClass{Category: category, Detail: detail, Code: code}
}

// ClassifyLegacyExit derives the classification from a legacy exit name and
// its declared code. The color prefix of the name wins over the code:
// "green_resolved" is success regardless of code, "red_timeout" failure,
// "yellow_partial" warning. Without a color prefix the code decides.
func ClassifyLegacyExit(name string, code int) ExitClass {
	lower := strings.ToLower(name)
	category := ""
	switch {
	case strings.HasPrefix(lower, "green_"):
		category = CategorySuccess
	case strings.HasPrefix(lower, "red_"):
		category = CategoryFailure
	case strings.HasPrefix(lower, "yellow_"):
		category = CategoryWarning
	default:
		category = CategoryForCode(code)
	}
	return ExitClass{Category: category, Detail: legacyDetail(name, category), Code: code}
}

// legacyDetail strips the color prefix and collapses redundant category
// names ("green_success" becomes "done").
func legacyDetail(name, category string) string {
	detail := name
	lower := strings.ToLower(name)
	for _, prefix := range []string{"green_", "red_", "yellow_"} {
		if strings.HasPrefix(lower, prefix) {
			detail = name[len(prefix):]
			break
		}
	}
	if strings.EqualFold(detail, category) && category == CategorySuccess {
		return "done"
	}
	return detail
}

// ExitNodePath renders the nested exit node name for a legacy exit
// definition ("green_resolved"/0 becomes "exit.success.resolved").
func ExitNodePath(name string, code int) string {
	class := ClassifyLegacyExit(name, code)
	return ExitNodePrefix + class.Category + "." + class.Detail
}
