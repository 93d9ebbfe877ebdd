package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
)

var (
	successColorFG = pterm.FgLightGreen
	warnColorFG    = pterm.FgYellow
	warnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	errorColorFG   = pterm.FgRed
	errorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	infoColorFG    = pterm.FgLightCyan
)

// Display pretty-prints a diagnostic to standard output, including the
// relevant source text with caret underlining when the diagnostic carries a
// position.  The source text is passed in directly: the compiler operates on
// in-memory source, not files.
func (d *Diagnostic) Display(src string) {
	if d.IsError() {
		errorStyleBG.Print(" " + d.Stage.String() + " error ")
	} else {
		warnStyleBG.Print(" " + d.Stage.String() + " warning ")
	}

	if d.Span == nil {
		fmt.Printf(" %s\n\n", d.Message)
		return
	}

	fmt.Printf(" [%d:%d] %s\n\n", d.Span.StartLine+1, d.Span.StartCol+1, d.Message)
	displaySourceText(src, d.Span, d.IsError())
}

// DisplaySummary prints the closing line of a compilation run: the error and
// warning totals.
func DisplaySummary(errorCount, warningCount int) {
	if errorCount == 0 {
		successColorFG.Print("ok ")
	} else {
		errorColorFG.Print("failed ")
	}

	fmt.Printf("(%d %s, %d %s)\n",
		errorCount, plural("error", errorCount),
		warningCount, plural("warning", warningCount))
}

func plural(noun string, n int) string {
	if n == 1 {
		return noun
	}

	return noun + "s"
}

// -----------------------------------------------------------------------------

// displaySourceText displays the segment of source text covered by a span
// with the covered columns underlined by carets.
func displaySourceText(src string, span *TextSpan, isError bool) {
	allLines := strings.Split(strings.ReplaceAll(src, "\t", "    "), "\n")
	if span.StartLine >= len(allLines) {
		return
	}

	endLine := span.EndLine
	if endLine >= len(allLines) {
		endLine = len(allLines) - 1
	}

	lines := allLines[span.StartLine : endLine+1]

	// Calculate the amount to pad line numbers by.
	maxLineNumLen := len(strconv.Itoa(endLine + 1))
	lineNumFmtStr := "%-" + strconv.Itoa(maxLineNumLen) + "v | "

	caretColor := errorColorFG
	if !isError {
		caretColor = warnColorFG
	}

	for i, line := range lines {
		infoColorFG.Printf(lineNumFmtStr, i+span.StartLine+1)
		fmt.Println(line)

		// Compute the caret range on this line.  Underlining runs from the
		// start column on the first line to the end column on the last and
		// covers whole lines in between.
		caretStart := 0
		if i == 0 {
			caretStart = span.StartCol
		}

		caretEnd := len(line)
		if i == len(lines)-1 && span.EndCol <= len(line) {
			caretEnd = span.EndCol
		}

		if caretEnd <= caretStart {
			caretEnd = caretStart + 1
		}

		fmt.Print(strings.Repeat(" ", maxLineNumLen), " | ")
		fmt.Print(strings.Repeat(" ", caretStart))
		caretColor.Println(strings.Repeat("^", caretEnd-caretStart))
	}

	fmt.Println()
}
