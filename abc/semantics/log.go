package semantics

import "github.com/tliron/commonlog"

var log = commonlog.GetLogger("abcasm.semantics")
