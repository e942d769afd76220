package formatter

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/fatih/color"
	tt "github.com/gnolang/acmatch/internal/types"
)

const tabWidth = 8

var (
	matchStyle   = color.New(color.FgGreen, color.Bold)
	labelStyle   = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	patternStyle = color.New(color.FgRed, color.Bold)
)

// SourceCode stores the content of a scanned file split into lines.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a SourceCode.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

func NewSourceCode(content []byte) *SourceCode {
	return &SourceCode{Lines: strings.Split(string(content), "\n")}
}

const matchTemplate = `{{header .Label .MaxLineNumWidth .Filename .StartLine .StartColumn}}
{{snippet .SnippetLines .StartLine .EndLine .MaxLineNumWidth .Padding -}}
{{underline .Pattern .Padding .StartLine .EndLine .StartColumn .EndColumn .SnippetLines}}
`

var tmpl = template.Must(template.New("match").Funcs(template.FuncMap{
	"header":    header,
	"snippet":   codeSnippet,
	"underline": underline,
}).Parse(matchTemplate))

type MatchData struct {
	Label           string
	Pattern         string
	Filename        string
	Padding         string
	StartLine       int
	StartColumn     int
	EndLine         int
	EndColumn       int
	MaxLineNumWidth int
	SnippetLines    []string
}

// GenerateFormattedMatches renders matches found in one file.
func GenerateFormattedMatches(matches []tt.Match, source *SourceCode) string {
	var builder strings.Builder
	for _, m := range matches {
		builder.WriteString(buildMatch(m, source))
	}
	return builder.String()
}

func buildMatch(m tt.Match, source *SourceCode) string {
	maxLineNumWidth := calculateMaxLineNumWidth(m.End.Line)
	data := MatchData{
		Label:           m.Label,
		Pattern:         m.Pattern,
		Filename:        m.Filename,
		StartLine:       m.Start.Line,
		StartColumn:     m.Start.Column,
		EndLine:         m.End.Line,
		EndColumn:       m.End.Column,
		MaxLineNumWidth: maxLineNumWidth,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		SnippetLines:    source.Lines,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting match: %v", err)
	}
	return buf.String()
}

func header(label string, maxLineNumWidth int, filename string, startLine int, startColumn int) string {
	out := matchStyle.Sprint("match: ")
	out += labelStyle.Sprintf("%s\n", label)
	out += lineStyle.Sprintf("%s--> ", strings.Repeat(" ", maxLineNumWidth))
	out += fileStyle.Sprintf("%s:%d:%d", filename, startLine, startColumn)
	return out
}

func codeSnippet(lines []string, startLine int, endLine int, maxLineNumWidth int, padding string) string {
	out := lineStyle.Sprintf("%s|\n", padding)
	for i := startLine; i <= endLine; i++ {
		if i-1 < 0 || i-1 >= len(lines) {
			continue
		}
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, i)
		out += lineStyle.Sprintf("%s | ", lineNum)
		out += expandTabs(lines[i-1]) + "\n"
	}
	return out
}

// underline draws carets below a single-line match. Matches spanning lines
// only get the pattern note.
func underline(pattern string, padding string, startLine int, endLine int, startColumn int, endColumn int, lines []string) string {
	out := lineStyle.Sprintf("%s| ", padding)
	if startLine != endLine || startLine <= 0 || startLine > len(lines) {
		return out + patternStyle.Sprintf("%q\n", pattern)
	}

	line := lines[startLine-1]
	start := calculateVisualColumn(line, startColumn)
	end := calculateVisualColumn(line, endColumn)
	width := end - start
	if width < 1 {
		width = 1
	}

	out += strings.Repeat(" ", start)
	out += patternStyle.Sprintf("%s %q\n", strings.Repeat("^", width), pattern)
	return out
}

func calculateMaxLineNumWidth(endLine int) int {
	return len(fmt.Sprintf("%d", endLine))
}

func expandTabs(line string) string {
	var expanded strings.Builder
	column := 0
	for _, ch := range line {
		if ch == '\t' {
			spaceCount := tabWidth - (column % tabWidth)
			expanded.WriteString(strings.Repeat(" ", spaceCount))
			column += spaceCount
		} else {
			expanded.WriteRune(ch)
			column++
		}
	}
	return expanded.String()
}

// calculateVisualColumn returns the display offset of the 1-based byte
// column in line, expanding tabs and counting each rune once.
func calculateVisualColumn(line string, column int) int {
	if column < 1 {
		return 0
	}
	visualColumn := 0
	for i, ch := range line {
		if i+1 >= column {
			break
		}
		if ch == '\t' {
			visualColumn += tabWidth - (visualColumn % tabWidth)
		} else {
			visualColumn++
		}
	}
	return visualColumn
}
