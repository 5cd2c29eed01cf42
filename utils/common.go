package utils

// MICRODEG is the default coordinate resolution, in degrees, below which two
// lon/lat values are considered the same point.
const MICRODEG = 1.e-6
