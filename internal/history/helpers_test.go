package history

import (
	"github.com/roach88/snaphist/internal/testutil"
)

// Short aliases for the shared fixtures.
var (
	at     = testutil.At
	attr   = testutil.Attr
	object = testutil.Object
)
