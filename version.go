package godatabend

import (
	"fmt"
	"runtime"
)

// DatabendGoDriverVersion is the version of the Go Databend driver.
const DatabendGoDriverVersion = "0.1.0"

// userAgent shows up in the User-Agent header of stage transfers.
var userAgent = fmt.Sprintf("databend-go/%v (%v; %v/%v)", DatabendGoDriverVersion, runtime.Version(), runtime.GOOS, runtime.GOARCH)
