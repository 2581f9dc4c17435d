package backtest

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"
)

// RunReport collects everything the org-mode run report renders.
type RunReport struct {
	RunID    string
	Created  time.Time
	Strategy string
	Start    string
	End      string
	Basis    string
	Dataset  string

	StartingCash float64
	Metrics      Metrics

	EntriesFound int
	DaysSkipped  int
	Skipped      map[string]int

	Config []byte // config snapshot, inlined verbatim

	Notes []string
}

var runOrgFuncs = template.FuncMap{
	"mul100": func(x float64) float64 { return x * 100.0 },
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

// WriteOrg renders the report to an org-mode file at path.
func (r *RunReport) WriteOrg(path string) error {
	t, err := template.New("run").Funcs(runOrgFuncs).Parse(runOrgTemplate)
	if err != nil {
		return fmt.Errorf("parse report template: %w", err)
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, r); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return os.WriteFile(path, buf.Bytes(), 0644)
}

const runOrgTemplate = `
* BACKTEST: {{.Strategy}} {{.Start}}..{{.End}}
:PROPERTIES:
:RUN_ID:      {{.RunID}}
:STRATEGY:    {{.Strategy}}
:BASIS:       {{if .Basis}}{{.Basis}}{{else}}(basis?){{end}}
:DATASET:     {{if .Dataset}}{{.Dataset}}{{else}}(dataset?){{end}}
:START_DATE:  {{.Start}}
:END_DATE:    {{.End}}
:START_CASH:  {{printf "%.2f" .StartingCash}}
:END_EQUITY:  {{printf "%.2f" .Metrics.EndingEquity}}
:NET_PL:      {{printf "%.2f" .Metrics.TotalPnL}}
:RETURN_PCT:  {{printf "%.2f" (mul100 .Metrics.TotalReturnPct)}}
:MAX_DD_PCT:  {{printf "%.2f" (mul100 .Metrics.MaxDrawdownPct)}}
:TRADES:      {{.Metrics.TotalTrades}}
:WINS:        {{.Metrics.Wins}}
:LOSSES:      {{.Metrics.Losses}}
:WIN_RATE:    {{printf "%.2f" (mul100 .Metrics.WinRate)}}
:CREATED:     [{{(orTime .Created).Format "2006-01-02 Mon 15:04"}}]
:END:

** Performance Summary
- Net P/L:       *{{printf "%.2f" .Metrics.TotalPnL}}*
- Return:        *{{printf "%.2f" (mul100 .Metrics.TotalReturnPct)}}%*
- Max Drawdown:  *{{printf "%.2f" (mul100 .Metrics.MaxDrawdownPct)}}%*
- Win Rate:      *{{printf "%.2f" (mul100 .Metrics.WinRate)}}%*

** Trade Distribution
| Outcome | Count |
|---------+-------|
| Wins    | {{.Metrics.Wins}} |
| Losses  | {{.Metrics.Losses}} |
| Total   | {{.Metrics.TotalTrades}} |

** Pipeline
- Entries found:  {{.EntriesFound}}
- Days skipped:   {{.DaysSkipped}}
{{- range $reason, $n := .Skipped }}
- Skipped ({{$reason}}): {{$n}}
{{- end }}

{{- if .Config }}

** Configuration
#+begin_src yaml
{{printf "%s" .Config}}#+end_src
{{- end }}

{{- if .Notes }}

** Observations
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
