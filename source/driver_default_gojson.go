package source

import (
	moderu "github.com/reoring/moderu"
	drvgojson "github.com/reoring/moderu/source/gojson"
)

// init in a separate package to avoid an import cycle in root. Importing
// this package sets go-json as the default driver.
func init() { moderu.SetJSONDriver(drvgojson.Driver()) }
