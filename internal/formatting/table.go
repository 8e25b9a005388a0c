// Package formatting renders control plane results for the terminal.
package formatting

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"marionettist/internal/domain"
	"marionettist/internal/ranking"
	"marionettist/internal/snapshot"
)

// createTable creates a new table with standard styling.
func createTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	return t
}

// RenderRankedResults prints the ranked outcome of one experiment run, best
// configuration first. One column per ranking metric, in priority order.
func RenderRankedResults(w io.Writer, result ranking.AbnTestResult) {
	ranked := result.TopRanked(ranking.MaxReportedConfigurations)
	if len(ranked) == 0 {
		fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No ranked configurations to show"))
		return
	}

	metricNames := make([]string, 0, result.MetricsOrder.Len())
	for _, metadata := range result.MetricsOrder.Ordered() {
		metricNames = append(metricNames, metadata.MetricName)
	}

	t := createTable(w)
	header := []interface{}{
		text.FgHiCyan.Sprint("RANK"),
		text.FgHiCyan.Sprint("CONFIGURATION"),
		text.FgHiCyan.Sprint("BEHAVIOURS"),
	}
	for _, name := range metricNames {
		header = append(header, text.FgHiCyan.Sprint(strings.ToUpper(name)))
	}
	t.AppendHeader(header)

	for _, entry := range ranked {
		row := []interface{}{
			entry.Rank + 1,
			entry.ConfigurationID,
			describeSnapshot(entry.Snapshot),
		}
		for _, name := range metricNames {
			row = append(row, formatMetricValue(entry, name))
		}
		t.AppendRow(row)
	}
	t.Render()

	fmt.Fprintf(w, "Run %s: %d configurations, %s per configuration\n",
		result.RunID, result.ConfigurationCount, result.TimeSlice)
}

// RenderServiceTable prints every registered service with its status and
// variation surface.
func RenderServiceTable(w io.Writer, registry *domain.ConfigRegistry) {
	configs := registry.AllRuntimeConfigurations()
	if len(configs) == 0 {
		fmt.Fprintf(w, "%s\n", text.FgYellow.Sprint("No marionette services registered"))
		return
	}
	metadata := registry.AllServiceMetadata()

	names := make([]domain.ServiceName, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool { return names[i] < names[j] })

	t := createTable(w)
	t.AppendHeader([]interface{}{
		text.FgHiCyan.Sprint("SERVICE"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("ENDPOINT"),
		text.FgHiCyan.Sprint("VARIATION POINTS"),
	})

	for _, name := range names {
		status := ""
		endpoint := ""
		if meta, ok := metadata[name]; ok {
			status = string(meta.Status())
			if meta.Endpoint() != nil {
				endpoint = meta.Endpoint().String()
			}
		}
		t.AppendRow([]interface{}{
			name.String(),
			status,
			endpoint,
			countVariationPoints(configs[name]),
		})
	}
	t.Render()
}

// describeSnapshot flattens a configuration snapshot into a compact
// "service.Class.method=behaviour" listing.
func describeSnapshot(snap snapshot.SystemConfigurationSnapshot) string {
	var parts []string
	for _, serviceName := range snap.ServiceNames() {
		service, _ := snap.ServiceByName(serviceName)
		for _, class := range service.Classes {
			for method, behaviour := range class.MethodBehaviours {
				parts = append(parts, fmt.Sprintf("%s.%s.%s=%s", serviceName, class.ClassName, method, behaviour))
			}
		}
	}
	sort.Strings(parts)
	return strings.Join(parts, "\n")
}

func formatMetricValue(entry ranking.RankedSystemConfiguration, metricName string) string {
	for _, metric := range entry.SystemMetrics {
		if metric.Name == metricName {
			if metric.Unit != "" {
				return fmt.Sprintf("%.4f %s", metric.Value, metric.Unit)
			}
			return fmt.Sprintf("%.4f", metric.Value)
		}
	}
	return "-"
}

func countVariationPoints(cfg domain.ServiceConfig) int {
	count := 0
	for _, class := range cfg.ClassConfigs() {
		for _, method := range class.MethodConfigs() {
			if method.VariationCount() > 1 {
				count++
			}
		}
	}
	return count
}
