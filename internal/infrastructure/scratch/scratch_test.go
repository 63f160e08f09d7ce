package scratch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/spf13/afero"
)

func TestManager(t *testing.T) {
	Convey("Given a scratch Manager on the real filesystem", t, func() {
		tempDir, err := os.MkdirTemp("", "scratch_test")
		So(err, ShouldBeNil)
		defer os.RemoveAll(tempDir)

		m := New(afero.NewOsFs(), tempDir)

		Convey("When allocating and releasing a directory", func() {
			dir, err := m.Allocate()
			So(err, ShouldBeNil)

			Convey("It should create an empty private directory under base", func() {
				So(strings.HasPrefix(dir, tempDir+string(filepath.Separator)+prefix), ShouldBeTrue)

				entries, err := os.ReadDir(dir)
				So(err, ShouldBeNil)
				So(len(entries), ShouldEqual, 0)

				So(os.WriteFile(filepath.Join(dir, "f.txt"), []byte("x"), 0644), ShouldBeNil)

				So(m.Release(dir), ShouldBeNil)
				_, err = os.Stat(dir)
				So(os.IsNotExist(err), ShouldBeTrue)
			})
		})

		Convey("When allocating twice", func() {
			a, err := m.Allocate()
			So(err, ShouldBeNil)
			b, err := m.Allocate()
			So(err, ShouldBeNil)

			Convey("It should hand out distinct directories", func() {
				So(a, ShouldNotEqual, b)
			})
		})

		Convey("When the base does not exist", func() {
			bad := New(afero.NewOsFs(), filepath.Join(tempDir, "missing", "base"))
			dir, err := bad.Allocate()

			Convey("It should return an error", func() {
				So(err, ShouldNotBeNil)
				So(err.Error(), ShouldContainSubstring, "failed to create scratch directory")
				So(dir, ShouldEqual, "")
			})
		})
	})

	Convey("Given a scratch Manager on an in-memory filesystem", t, func() {
		fs := afero.NewMemMapFs()
		So(fs.MkdirAll("/tmp", 0755), ShouldBeNil)
		m := New(fs, "/tmp")

		dir, err := m.Allocate()
		So(err, ShouldBeNil)
		So(fs.MkdirAll(filepath.Join(dir, "sub"), 0755), ShouldBeNil)
		So(afero.WriteFile(fs, filepath.Join(dir, "sub", "f.txt"), []byte("x"), 0644), ShouldBeNil)

		Convey("Release should remove the whole tree", func() {
			So(m.Release(dir), ShouldBeNil)
			exists, err := afero.Exists(fs, dir)
			So(err, ShouldBeNil)
			So(exists, ShouldBeFalse)
		})
	})
}
