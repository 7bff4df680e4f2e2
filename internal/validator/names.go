package validator

import (
	"go/token"
	"strings"
	"unicode"
)

// NameValidation is the outcome of validating an entrypoint or node name.
// Invalid names always carry a normalized suggestion the caller can offer.
type NameValidation struct {
	IsValid    bool
	Normalized string
	Reason     string
	Suggestion string
}

func validName(name string) NameValidation {
	return NameValidation{IsValid: true, Normalized: name}
}

func invalidName(reason, suggestion string) NameValidation {
	return NameValidation{IsValid: false, Reason: reason, Suggestion: suggestion}
}

// ValidateEntryName checks an entrypoint name: a single identifier with no
// hierarchy separators, usable as-is in generated symbol names.
func ValidateEntryName(name string) NameValidation {
	if strings.ContainsAny(name, "./") {
		flat := strings.NewReplacer(".", "_", "/", "_").Replace(name)
		return invalidName("entrypoint names cannot contain '.' or '/'", SuggestName(flat))
	}
	if !isValidIdentifier(name) {
		return invalidName(identifierReason(name), SuggestName(name))
	}
	return validName(name)
}

// ValidateNodeName checks a dot-segmented node name. Every segment must be a
// valid identifier; slashes are rejected with the dotted form suggested.
func ValidateNodeName(name string) NameValidation {
	if strings.Contains(name, "/") {
		return invalidName("node names use '.' as the hierarchy separator, not '/'",
			strings.ReplaceAll(name, "/", "."))
	}
	for _, segment := range strings.Split(name, ".") {
		if !isValidIdentifier(segment) {
			return invalidName(identifierReason(segment), suggestNodeName(name))
		}
	}
	return validName(name)
}

// isValidIdentifier reports whether s is a safe identifier in generated Go
// source: non-empty, not a keyword, Unicode-identifier-compatible and not
// starting with a digit. go/token implements exactly those rules.
func isValidIdentifier(s string) bool {
	return token.IsIdentifier(s)
}

func identifierReason(segment string) string {
	switch {
	case segment == "":
		return "empty name segment"
	case token.IsKeyword(segment):
		return "'" + segment + "' is a reserved word"
	case startsWithDigit(segment):
		return "name segments cannot start with a digit"
	default:
		return "'" + segment + "' is not a valid identifier"
	}
}

func startsWithDigit(s string) bool {
	for _, r := range s {
		return unicode.IsDigit(r)
	}
	return false
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// SuggestName normalizes an invalid identifier into a usable one:
// hyphens become underscores, pure numbers get an exit_ prefix, names that
// merely start with a digit get an n_ prefix, keywords get a trailing
// underscore and empty names become "unnamed".
func SuggestName(name string) string {
	name = strings.ReplaceAll(name, "-", "_")
	switch {
	case name == "":
		return "unnamed"
	case allDigits(name):
		return "exit_" + name
	case startsWithDigit(name):
		return "n_" + name
	case token.IsKeyword(name):
		return name + "_"
	default:
		return name
	}
}

func suggestNodeName(name string) string {
	segments := strings.Split(name, ".")
	for i, segment := range segments {
		if !isValidIdentifier(segment) {
			segments[i] = SuggestName(segment)
		}
	}
	return strings.Join(segments, ".")
}
