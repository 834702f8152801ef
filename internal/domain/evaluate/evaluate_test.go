package evaluate_test

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/veilmetrics/veil/internal/domain/evaluate"
)

func TestRegression(t *testing.T) {
	Convey("Given paired true and predicted values", t, func() {
		Convey("A perfect fit scores zero error and R2 of 1", func() {
			m, err := evaluate.Regression([]float64{10, 20, 30}, []float64{10, 20, 30})

			So(err, ShouldBeNil)
			So(m.MSE, ShouldEqual, 0.0)
			So(m.RMSE, ShouldEqual, 0.0)
			So(m.MAE, ShouldEqual, 0.0)
			So(m.R2, ShouldEqual, 1.0)
		})

		Convey("A constant offset is reflected in every metric", func() {
			m, err := evaluate.Regression([]float64{10, 20, 30}, []float64{12, 22, 32})

			So(err, ShouldBeNil)
			So(m.MSE, ShouldEqual, 4.0)
			So(m.RMSE, ShouldEqual, 2.0)
			So(m.MAE, ShouldEqual, 2.0)
			So(m.R2, ShouldAlmostEqual, 1-12.0/200.0)
		})

		Convey("Predicting the mean everywhere gives R2 of 0", func() {
			m, err := evaluate.Regression([]float64{10, 20, 30}, []float64{20, 20, 20})

			So(err, ShouldBeNil)
			So(m.R2, ShouldAlmostEqual, 0.0)
		})

		Convey("Constant truth with an imperfect fit gives R2 of 0", func() {
			m, err := evaluate.Regression([]float64{5, 5, 5}, []float64{5, 6, 5})

			So(err, ShouldBeNil)
			So(m.R2, ShouldEqual, 0.0)
		})

		Convey("Empty and mismatched inputs are rejected", func() {
			_, err := evaluate.Regression(nil, nil)
			So(errors.Is(err, evaluate.ErrBadEvalInput), ShouldBeTrue)

			_, err = evaluate.Regression([]float64{1, 2}, []float64{1})
			So(errors.Is(err, evaluate.ErrBadEvalInput), ShouldBeTrue)
		})
	})
}

func TestAccuracyWithinThreshold(t *testing.T) {
	Convey("Given paired true and predicted values", t, func() {
		yTrue := []float64{50, 60, 70, 80}
		yPred := []float64{55, 75, 71, 80}

		Convey("Errors at or under the threshold count as accurate", func() {
			acc, err := evaluate.AccuracyWithinThreshold(yTrue, yPred, 10)

			So(err, ShouldBeNil)
			So(acc, ShouldEqual, 75.0)
		})

		Convey("A boundary error counts as within", func() {
			acc, err := evaluate.AccuracyWithinThreshold([]float64{50}, []float64{60}, 10)

			So(err, ShouldBeNil)
			So(acc, ShouldEqual, 100.0)
		})

		Convey("Empty input is rejected", func() {
			_, err := evaluate.AccuracyWithinThreshold(nil, nil, 10)

			So(errors.Is(err, evaluate.ErrBadEvalInput), ShouldBeTrue)
		})
	})
}
