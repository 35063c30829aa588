package domain

// Store is one logical data source: a named sheet/tab in the source
// spreadsheet mapped to a destination folder in the object store.
// Stores are static configuration and immutable for the run.
type Store struct {
	// Name identifies the store and prefixes every exported filename.
	Name string
	// Sheet is the title of the sheet/tab holding the store's charts.
	Sheet string
	// FolderID is the destination root under which dated subfolders
	// are created.
	FolderID string
}

// ChartRef identifies one chart embedded in a sheet. Produced once per
// run by the document graph query; consumed read-only by chart tasks.
type ChartRef struct {
	ChartID int64
	Title   string
	SheetID int64
}

// SheetCharts groups the charts found on one sheet.
type SheetCharts struct {
	SheetID int64
	Charts  []ChartRef
}

// Transform is an absolute scale+translate applied to a page element.
// Translations and the implied element size are in the same unit the
// presentation service reports (EMU for Google Slides).
type Transform struct {
	ScaleX     float64
	ScaleY     float64
	TranslateX float64
	TranslateY float64
}
