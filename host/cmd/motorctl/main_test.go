package main

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParsePower(t *testing.T) {
	Convey("valid numbers parse", t, func() {
		p, err := parsePower("-0.3")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, float32(-0.3))

		p, err = parsePower("2")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, float32(2))
	})

	Convey("garbage is rejected", t, func() {
		_, err := parsePower("fast")
		So(err, ShouldNotBeNil)
	})

	Convey("non-finite values are rejected", t, func() {
		for _, s := range []string{"NaN", "Inf", "-Inf"} {
			_, err := parsePower(s)
			So(err, ShouldNotBeNil)
		}
	})
}
