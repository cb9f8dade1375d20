package query

import (
	"strings"
	"time"
)

// Column types reported by the API in column headers.
const (
	ColumnTypeMetric    = "METRIC"
	ColumnTypeDimension = "DIMENSION"
)

// ColumnHeader describes one column of a result page.
type ColumnHeader struct {
	Name       string `json:"name"`
	ColumnType string `json:"columnType"`
	DataType   string `json:"dataType"`
}

// Page is one physical result page as returned by the API.
//
// TotalResults is authoritative for the whole logical query, not just the
// rows carried by this page. NextLink, when present, points at the next page
// of the same query.
type Page struct {
	Kind                string            `json:"kind"`
	TotalResults        int               `json:"totalResults"`
	ItemsPerPage        int               `json:"itemsPerPage"`
	ColumnHeaders       []ColumnHeader    `json:"columnHeaders"`
	Rows                [][]string        `json:"rows"`
	NextLink            string            `json:"nextLink"`
	ContainsSampledData bool              `json:"containsSampledData"`
	TotalsForAllResults map[string]string `json:"totalsForAllResults"`
}

// Row is one reporting unit: metric values keyed by metric name and
// dimension values keyed by dimension name, with the namespace prefix
// stripped from the names. The query's date range is attached to every row.
type Row struct {
	Metrics    map[string]string
	Dimensions map[string]string
	StartDate  time.Time
	EndDate    time.Time
}

// buildRow zips one raw row with the page's column headers.
// Values are kept as the strings the API returned.
func buildRow(headers []ColumnHeader, values []string, start, end time.Time) Row {
	row := Row{
		Metrics:    make(map[string]string),
		Dimensions: make(map[string]string),
		StartDate:  start,
		EndDate:    end,
	}

	for i, h := range headers {
		if i >= len(values) {
			break
		}
		name := strings.TrimPrefix(h.Name, TokenPrefix)
		if h.ColumnType == ColumnTypeMetric {
			row.Metrics[name] = values[i]
		} else {
			row.Dimensions[name] = values[i]
		}
	}

	return row
}
