//go:build gojson

package compare_test

import (
	moderu "github.com/reoring/moderu"
	drv "github.com/reoring/moderu/source/gojson"
)

func init() {
	moderu.SetJSONDriver(drv.Driver())
}
