package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version = AuctionSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// AuctionSemVer is the current version of the auction application.
	// It's the Semantic Version of the software.
	AuctionSemVer = "0.3.0"

	// AppProtocol versions the state machine: the store layout and the
	// rules of every state transition. Bump it whenever a stored record
	// or the outcome of an operation changes.
	AppProtocol uint64 = 1
)

// App includes the protocol and software version for the application.
type App struct {
	Protocol uint64 `json:"protocol"`
	Software string `json:"software"`
}

// Current returns the version of the running binary.
func Current() App {
	return App{Protocol: AppProtocol, Software: Version}
}
