package tokenizer

import (
	"regexp"
	"strings"
)

var (
	htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

	markupRules = []struct {
		re   *regexp.Regexp
		repl string
	}{
		{regexp.MustCompile(`\*\*([^*]+)\*\*`), `<b>$1</b>`},
		{regexp.MustCompile(`\*([^*]+)\*`), `<i>$1</i>`},
		{regexp.MustCompile("`([^`]+)`"), `<span style="font-family:monospace">$1</span>`},
		{regexp.MustCompile(`\n*---\n*`), `<hr>`},
		{regexp.MustCompile(`\((.+)\)\[(.+)\]`), `<a href="$2">$1</a>`},
	}
)

func markup(text string) string {
	text = htmlEscaper.Replace(text)
	for _, rule := range markupRules {
		text = rule.re.ReplaceAllString(text, rule.repl)
	}
	return strings.ReplaceAll(text, "\n", "<br>")
}

// FormatDescription builds a rule description ready for a tooltip. The
// title, description and example accept a small markup: **bold**, *italic*,
// `monospace`, --- (separator) and (text)[url] links. Each part is
// delimited so DescriptionSection can extract it back.
func FormatDescription(title, description, example string) string {
	var sb strings.Builder
	if strings.TrimSpace(title) != "" {
		sb.WriteString("<b><!-- title -->" + markup(title) + "<!-- title --></b><hr>")
	}
	if strings.TrimSpace(description) != "" {
		sb.WriteString("<!-- description -->" + markup(description) + "<!-- description -->")
	}
	if strings.TrimSpace(example) != "" {
		sb.WriteString("<hr><i>Example</i><br><br>")
		sb.WriteString("<!-- example -->" + markup(example) + "<!-- example -->")
	}
	return sb.String()
}

// DescriptionSection extracts "title", "description" or "example" from a
// text built by FormatDescription. It returns "" when the section is absent.
func DescriptionSection(description, section string) string {
	marker := `<!--\s+` + regexp.QuoteMeta(section) + `\s+-->`
	re, err := regexp.Compile(marker + `(?s:(.*))` + marker)
	if err != nil {
		return ""
	}
	if found := re.FindStringSubmatch(description); found != nil {
		return found[1]
	}
	return ""
}
