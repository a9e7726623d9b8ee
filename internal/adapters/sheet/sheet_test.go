package sheet

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"
)

func writeWorkbook(path, sheetName string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()
	if sheetName != "" && sheetName != "Sheet1" {
		if _, err := f.NewSheet(sheetName); err != nil {
			return err
		}
	} else {
		sheetName = "Sheet1"
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}

func TestLoadXLSX(t *testing.T) {
	Convey("Given an xlsx workbook", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "orders.xlsx")
		So(writeWorkbook(path, "", [][]any{
			{"Date", "Product", "Total Orders"},
			{"2022-05-25", "Mug", 4},
			{},
			{"2023-05-24", "Cap", 7},
		}), ShouldBeNil)

		Convey("When loaded", func() {
			tbl, err := Load(context.Background(), path)

			Convey("Then the header and non-blank rows are read", func() {
				So(err, ShouldBeNil)
				So(tbl.Header, ShouldResemble, []string{"Date", "Product", "Total Orders"})
				So(tbl.Len(), ShouldEqual, 2)
				So(tbl.Cell(0, 1), ShouldEqual, "Mug")
				So(tbl.Cell(1, 2), ShouldEqual, "7")
			})
		})

		Convey("When a missing sheet is requested", func() {
			_, err := Load(context.Background(), path, WithSheetName("Nope"))

			Convey("Then it fails", func() {
				So(errors.Is(err, ErrSheetNotFound), ShouldBeTrue)
			})
		})
	})

	Convey("Given a workbook with a named sheet", t, func() {
		path := filepath.Join(t.TempDir(), "named.xlsx")
		So(writeWorkbook(path, "Orders", [][]any{
			{"Date", "Product", "Total Orders"},
			{"2024-05-22", "Pen", 2},
		}), ShouldBeNil)

		Convey("When that sheet is requested", func() {
			tbl, err := Load(context.Background(), path, WithSheetName("Orders"))

			Convey("Then its rows are read", func() {
				So(err, ShouldBeNil)
				So(tbl.Cell(0, 1), ShouldEqual, "Pen")
			})
		})
	})
}

func TestLoadXLSXDateSystem(t *testing.T) {
	Convey("Given a workbook using the 1904 date system", t, func() {
		path := filepath.Join(t.TempDir(), "mac.xlsx")
		f := excelize.NewFile()
		date1904 := true
		So(f.SetWorkbookProps(&excelize.WorkbookPropsOptions{Date1904: &date1904}), ShouldBeNil)
		So(f.SetSheetRow("Sheet1", "A1", &[]any{"Date", "Product", "Total Orders"}), ShouldBeNil)
		So(f.SetSheetRow("Sheet1", "A2", &[]any{43608, "Mug", 4}), ShouldBeNil)
		So(f.SaveAs(path), ShouldBeNil)
		So(f.Close(), ShouldBeNil)

		Convey("When loaded", func() {
			tbl, err := Load(context.Background(), path)

			Convey("Then the table carries the date system", func() {
				So(err, ShouldBeNil)
				So(tbl.Date1904, ShouldBeTrue)
				So(tbl.Cell(0, 0), ShouldEqual, "43608")
			})
		})
	})

	Convey("Given a default workbook", t, func() {
		path := filepath.Join(t.TempDir(), "orders.xlsx")
		So(writeWorkbook(path, "", [][]any{{"Date", "Product", "Total Orders"}, {45070, "Mug", 4}}), ShouldBeNil)

		Convey("When loaded", func() {
			tbl, err := Load(context.Background(), path)

			Convey("Then it uses the 1900 date system", func() {
				So(err, ShouldBeNil)
				So(tbl.Date1904, ShouldBeFalse)
			})
		})
	})
}

func TestLoadCSV(t *testing.T) {
	Convey("Given a csv file with ragged rows", t, func() {
		path := filepath.Join(t.TempDir(), "orders.CSV")
		data := "Date,Product,Total Orders\n2022-05-25,Mug,4\n2023-05-24,Cap\n"
		So(os.WriteFile(path, []byte(data), 0o600), ShouldBeNil)

		tbl, err := Load(context.Background(), path)

		Convey("Then every row is read", func() {
			So(err, ShouldBeNil)
			So(tbl.Len(), ShouldEqual, 2)
			So(tbl.Cell(1, 2), ShouldEqual, "")
		})
	})
}

func TestLoadErrors(t *testing.T) {
	Convey("Given an unsupported extension", t, func() {
		_, err := Load(context.Background(), "/tmp/orders.ods")
		So(errors.Is(err, ErrUnsupportedFormat), ShouldBeTrue)
	})

	Convey("Given a missing file", t, func() {
		_, err := Load(context.Background(), filepath.Join(t.TempDir(), "gone.xlsx"))
		So(err, ShouldNotBeNil)
	})

	Convey("Given a cancelled context", t, func() {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Load(ctx, "/tmp/orders.csv")
		So(errors.Is(err, context.Canceled), ShouldBeTrue)
	})

	Convey("Given file names", t, func() {
		So(Ext("report.XLSX"), ShouldEqual, "xlsx")
		So(Ext("archive.tar.xls"), ShouldEqual, "xls")
		So(Ext("noext"), ShouldEqual, "")
	})
}
