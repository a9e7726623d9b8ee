package table_test

import (
	"testing"

	"github.com/okian/demandrank/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTable(t *testing.T) {
	Convey("Given raw rows with a blank preamble and a BOM-prefixed header", t, func() {
		tbl := table.New([][]string{
			{"", "  "},
			{"\uFEFFDate", " Product ", "Total Orders"},
			{"2022-05-23", "Apple", "3"},
			{"", "", ""},
			{"2022-05-24", "Pear"},
		})

		Convey("Then the header is normalized and blank rows are dropped", func() {
			So(tbl.Header, ShouldResemble, []string{"Date", "Product", "Total Orders"})
			So(tbl.Len(), ShouldEqual, 2)
		})

		Convey("Then columns resolve by name", func() {
			So(tbl.Index("Date"), ShouldEqual, 0)
			So(tbl.Index("Total Orders"), ShouldEqual, 2)
			So(tbl.Index("total orders"), ShouldEqual, -1)
			So(tbl.Index("Region"), ShouldEqual, -1)
		})

		Convey("Then short rows and bad indexes read as empty", func() {
			So(tbl.Cell(0, 1), ShouldEqual, "Apple")
			So(tbl.Cell(1, 2), ShouldEqual, "")
			So(tbl.Cell(1, -1), ShouldEqual, "")
			So(tbl.Cell(5, 0), ShouldEqual, "")
		})
	})

	Convey("Given full-width header text", t, func() {
		tbl := table.New([][]string{{"Ｄａｔｅ"}})

		Convey("Then NFKC folds it to ASCII", func() {
			So(tbl.Index("Date"), ShouldEqual, 0)
		})
	})

	Convey("Given no rows at all", t, func() {
		tbl := table.New(nil)

		Convey("Then the table is empty", func() {
			So(tbl.Header, ShouldBeNil)
			So(tbl.Len(), ShouldEqual, 0)
			So(tbl.Index("Date"), ShouldEqual, -1)
		})
	})
}
