package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	spec "github.com/nihei9/tarkan/spec/grammar"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:     "show <report file path>",
		Short:   "Print a report in a readable format",
		Example: `  tarkan show calc-report.json`,
		Args:    cobra.ExactArgs(1),
		RunE:    runShow,
	}
	rootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	report, err := readReport(args[0])
	if err != nil {
		return err
	}

	err = writeReportText(os.Stdout, report)
	if err != nil {
		return err
	}

	if n := countConflicts(report); n > 0 {
		pterm.Error.Println(fmt.Sprintf("%v conflicts", n))
	} else {
		pterm.Info.Println("No conflict")
	}
	return nil
}

func readReport(path string) (*spec.Report, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("Cannot read the report %s: %w", path, err)
	}
	report := &spec.Report{}
	err = json.Unmarshal(b, report)
	if err != nil {
		return nil, fmt.Errorf("Cannot parse the report %s: %w", path, err)
	}
	return report, nil
}

func countConflicts(report *spec.Report) int {
	n := 0
	for _, s := range report.States {
		n += len(s.SRConflict) + len(s.RRConflict)
	}
	return n
}

const reportTemplate = `# Tokens

{{ range .Tokens -}}
{{ printToken . }}
{{ end }}
# Rules

{{ range .Rules -}}
{{ printRule . }}
{{ range .Alternatives -}}
{{ printAlternative . }}
{{ end -}}
{{ end }}
# States
{{ range .States }}
## State {{ .Number }}

{{ range .Kernel -}}
{{ printItem . }}
{{ end }}
{{ range .Shift -}}
{{ printShift . }}
{{ end -}}
{{ range .Reduce -}}
{{ printReduce . }}
{{ end -}}
{{ range .GoTo -}}
{{ printGoTo . }}
{{ end }}
{{- range .SRConflict }}
{{ printSRConflict . }}
{{- end }}
{{- range .RRConflict }}
{{ printRRConflict . }}
{{- end }}
{{ end }}`

func writeReportText(w io.Writer, report *spec.Report) error {
	fns := template.FuncMap{
		"printToken": func(tok *spec.ReportToken) string {
			switch tok.Kind {
			case spec.TokenKindEOF:
				return fmt.Sprintf("%4v <eof>", tok.Number)
			case spec.TokenKindRegex:
				return fmt.Sprintf("%4v r%q", tok.Number, tok.Text)
			}
			return fmt.Sprintf("%4v %q", tok.Number, tok.Text)
		},
		"printRule": func(rule *spec.ReportRule) string {
			if rule.Type == "" {
				return fmt.Sprintf("%4v %v", rule.Number, rule.Name)
			}
			return fmt.Sprintf("%4v %v -> %v", rule.Number, rule.Name, rule.Type)
		},
		"printAlternative": func(alt *spec.ReportAlternative) string {
			if alt.Code == "" {
				return fmt.Sprintf("     %4v %v", alt.Number, alt.Text)
			}
			return fmt.Sprintf("     %4v %v %v", alt.Number, alt.Text, oneLine(alt.Code))
		},
		"printItem": func(item *spec.Item) string {
			return fmt.Sprintf("%v, %v", item.Text, strings.Join(item.LookAhead, " "))
		},
		"printShift": func(tran *spec.Transition) string {
			return fmt.Sprintf("shift  %4v on %v", tran.State, tran.Symbol)
		},
		"printReduce": func(r *spec.Reduce) string {
			return fmt.Sprintf("reduce %v on %v", r.Text, strings.Join(r.LookAhead, ", "))
		},
		"printGoTo": func(tran *spec.Transition) string {
			return fmt.Sprintf("goto   %4v on %v", tran.State, tran.Symbol)
		},
		"printSRConflict": func(c *spec.SRConflict) string {
			return fmt.Sprintf("shift/reduce conflict on %v: shift %v, reduce %v", c.Token, c.ShiftTarget, c.Text)
		},
		"printRRConflict": func(c *spec.RRConflict) string {
			return fmt.Sprintf("reduce/reduce conflict on %v: reduce %v, reduce %v", c.Token, c.Text1, c.Text2)
		},
	}

	tmpl, err := template.New("").Funcs(fns).Parse(reportTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, report)
}

func oneLine(code string) string {
	return strings.Join(strings.Fields(code), " ")
}
