// Package query implements the Core Reporting query engine: it turns a
// structured report specification into wire parameters, executes the query
// through an injected transport, and stitches successive result pages into a
// single lazy row sequence.
//
// Pagination is strictly sequential and demand-driven. A page is fetched only
// when the previous page's rows are exhausted and the consumer asks for the
// next row, and the engine never requests more rows than the caller's row
// budget still allows.
//
// Example usage:
//
//	c := query.NewClient(transport)
//	results, err := c.Get(ctx, query.Spec{
//		IDs:       []string{"12345"},
//		StartDate: time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC),
//		EndDate:   time.Date(2012, 1, 2, 0, 0, 0, 0, time.UTC),
//		Metrics:   []string{"visits"},
//	})
//	if err != nil {
//		return err
//	}
//	for results.Next() {
//		row := results.Row()
//		fmt.Println(row.Metrics["visits"])
//	}
//	if err := results.Err(); err != nil {
//		return err
//	}
//
// The iteration is single-pass: each continuation fetch is a side effect, so
// a Results value cannot be rewound once consumed.
package query
