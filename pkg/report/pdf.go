package report

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

var (
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241}
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141}

	titleStyle = props.Text{Size: 22, Style: fontstyle.Bold, Align: align.Center, Color: headerBgColor}
	h2Style    = props.Text{Size: 14, Style: fontstyle.Bold, Color: headerBgColor, Top: 5}
	smallStyle = props.Text{Size: 8, Color: darkGrayColor}
	boldStyle  = props.Text{Size: 10, Style: fontstyle.Bold}

	metricValueStyle = props.Text{Size: 18, Style: fontstyle.Bold, Align: align.Center, Color: primaryColor}
	metricLabelStyle = props.Text{Size: 9, Align: align.Center, Color: darkGrayColor}

	tableHeaderStyle     = &props.Cell{BackgroundColor: primaryColor}
	tableHeaderTextStyle = props.Text{Size: 9, Style: fontstyle.Bold, Color: &props.Color{Red: 255, Green: 255, Blue: 255}, Align: align.Center}
	tableCellStyle       = &props.Cell{BorderType: border.Bottom, BorderColor: lightGrayColor}
	tableCellTextStyle   = props.Text{Size: 9, Align: align.Center}
)

// WritePDF renders data as a one-page-per-run PDF report and returns its
// bytes.
func WritePDF(data Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	addPDFHeader(m, data)
	addPDFSummary(m, data)
	addPDFRoutesTable(m, data)
	addPDFFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF report: %w", err)
	}
	return doc.GetBytes(), nil
}

func addPDFHeader(m core.Maroto, data Data) {
	m.AddRow(14, text.NewCol(12, fmt.Sprintf("CVRP Run Report — %s", data.InstanceName), titleStyle))
	m.AddRow(5, line.NewCol(12))
	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Run ID: %s", data.RunID), smallStyle),
		text.NewCol(6, fmt.Sprintf("Runtime: %s", formatDuration(data.Runtime)), props.Text{Size: 8, Color: darkGrayColor, Align: align.Right}),
	)
	m.AddRow(8)
}

func addPDFSummary(m core.Maroto, data Data) {
	m.AddRow(10, text.NewCol(12, "Summary", h2Style))
	m.AddRow(2, line.NewCol(12, props.Line{Color: primaryColor}))
	m.AddRow(5)

	m.AddRow(18,
		col.New(3).Add(text.New(fmt.Sprintf("%d", data.TotalCost), metricValueStyle), text.New("Total Cost", metricLabelStyle)),
		col.New(3).Add(text.New(fmt.Sprintf("%d", data.NumRoutes), metricValueStyle), text.New("Routes", metricLabelStyle)),
		col.New(3).Add(text.New(fmt.Sprintf("%d", data.NumNodes), metricValueStyle), text.New("Customers", metricLabelStyle)),
		col.New(3).Add(text.New(formatGap(data.GapPercent), metricValueStyle), text.New("Gap to BKS", metricLabelStyle)),
	)

	m.AddRow(6,
		text.NewCol(6, fmt.Sprintf("Vehicle capacity: %d", data.Capacity), boldStyle),
		text.NewCol(6, fmt.Sprintf("Iterations: %d", data.Iterations), boldStyle),
	)
	m.AddRow(8)
}

func addPDFRoutesTable(m core.Maroto, data Data) {
	m.AddRow(10, text.NewCol(12, "Routes", h2Style))
	m.AddRow(2, line.NewCol(12, props.Line{Color: primaryColor}))

	m.AddRow(8,
		text.NewCol(2, "#", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(5, "Sequence", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Stops", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(1, "Load", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Cost", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	for _, r := range data.Routes {
		m.AddRow(6,
			text.NewCol(2, fmt.Sprintf("%d", r.Index), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(5, r.Nodes, tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%d", r.Size), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(1, fmt.Sprintf("%d", r.Volume), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%d", r.Cost), tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
}

func addPDFFooter(m core.Maroto, data Data) {
	m.AddRow(10)
	m.AddRow(2, line.NewCol(12, props.Line{Color: lightGrayColor}))
	m.AddRow(6,
		text.NewCol(12, fmt.Sprintf("Generated by kgls | instance %s", data.InstanceName), props.Text{Size: 8, Color: darkGrayColor, Align: align.Center}),
	)
}
