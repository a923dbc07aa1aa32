package swgrid

// CRSEPSG is purely descriptive metadata about the archive's coordinate
// reference system (spec.md §3: "crs_epsg... does not alter decoding").
// It exists for human-readable output in the inspect CLI and logs, never
// for grid arithmetic — CoordToCell/CellToBounds work in whatever
// easting/northing units the archive declares, regardless of CRS.
//
// Adapted from the teacher's coord.Projection registry
// (internal/coord/projection.go, internal/coord/swiss.go): the teacher's
// registry reprojects between a source CRS and WGS84 to place pixels on a
// Mercator pyramid, which is a Non-goal here (spec.md §1, "reprojection...
// out of scope"). Only the code→name lookup table survives.
var knownCRS = map[uint32]string{
	2056: "CH1903+ / LV95",
	4326: "WGS 84",
	3857: "WGS 84 / Pseudo-Mercator",
	25832: "ETRS89 / UTM zone 32N",
	3035:  "ETRS89-extended / LAEA Europe",
}

// CRSName returns a human-readable name for a known EPSG code, or ""
// if the code is not one swtiles has a name for. Archives with an unknown
// crs_epsg are perfectly valid; this is a display convenience only.
func CRSName(epsg uint32) string {
	return knownCRS[epsg]
}
