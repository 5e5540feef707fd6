package catalog

import "time"

// now is a seam so tests can pin timestamps; production uses wall time.
var now = func() int64 { return time.Now().Unix() }
