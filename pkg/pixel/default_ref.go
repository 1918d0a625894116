//go:build pixelref

package pixel

// Default is the converter used when none is configured.
var Default Converter = Reference{}
