package services

import (
	"errors"

	goerrors "github.com/goliatone/go-errors"
	"github.com/kerbaras/companion/pkg/utils"
)

// Kind classifies a bootstrap failure for the user.
type Kind int

const (
	KindNone Kind = iota
	KindNetwork
	KindMaintenance
	KindIntegrity
	KindSetup
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "NetworkError"
	case KindMaintenance:
		return "MaintenanceError"
	case KindIntegrity:
		return "IntegrityError"
	case KindSetup:
		return "SetupError"
	default:
		return "None"
	}
}

const (
	CategoryMaintenance goerrors.Category = "maintenance"
	CategoryIntegrity   goerrors.Category = "integrity"
	CategorySetup       goerrors.Category = "setup"
)

// Text codes shown to the user; they double as translation keys.
const (
	CodeOffline          = "navigator_offline"
	CodeFetchingManifest = "error_fetchingManifest"
	CodeMaintenance      = "error_maintenance"
	CodeManifest         = "error_manifest"
	CodeSetUpManifest    = "error_setUpManifest"
)

var kindCategories = map[Kind]goerrors.Category{
	KindNetwork:     utils.CategoryNetwork,
	KindMaintenance: CategoryMaintenance,
	KindIntegrity:   CategoryIntegrity,
	KindSetup:       CategorySetup,
}

var kindCodes = map[Kind]string{
	KindNetwork:     CodeFetchingManifest,
	KindMaintenance: CodeMaintenance,
	KindIntegrity:   CodeManifest,
	KindSetup:       CodeSetUpManifest,
}

func newKindError(kind Kind, code, message string, cause error) error {
	if code == "" {
		code = kindCodes[kind]
	}
	if cause == nil {
		return goerrors.New(message, kindCategories[kind]).WithTextCode(code)
	}
	return goerrors.Wrap(cause, kindCategories[kind], message).WithTextCode(code)
}

func networkError(message string, cause error) error {
	return newKindError(KindNetwork, "", message, cause)
}

func maintenanceError(message string, cause error) error {
	return newKindError(KindMaintenance, "", message, cause)
}

func integrityError(message string, cause error) error {
	return newKindError(KindIntegrity, "", message, cause)
}

func setupError(message string, cause error) error {
	return newKindError(KindSetup, "", message, cause)
}

// classify gives err a bootstrap kind: transport failures are network
// errors, everything else without a kind is a setup failure.
func classify(message string, err error) error {
	if err == nil {
		return nil
	}
	switch KindOf(err) {
	case KindMaintenance, KindIntegrity, KindSetup:
		return err
	}
	if utils.IsNetworkError(err) {
		return networkError(message, err)
	}
	return setupError(message, err)
}

// KindOf returns the kind carried by err, or KindNone.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}
	for _, kind := range []Kind{KindMaintenance, KindIntegrity, KindSetup} {
		if goerrors.IsCategory(err, kindCategories[kind]) {
			return kind
		}
	}
	if goerrors.HasCategory(err, utils.CategoryNetwork) {
		return KindNetwork
	}
	return KindNone
}

// CodeOf returns the text code attached to err, if any.
func CodeOf(err error) string {
	var rich *goerrors.Error
	if errors.As(err, &rich) {
		return rich.TextCode
	}
	return ""
}

// Message is the user-facing description of a failure kind.
func Message(kind Kind) string {
	switch kind {
	case KindNetwork:
		return "Could not reach the game servers. Check your connection and try again."
	case KindMaintenance:
		return "The game servers are down for maintenance. Try again later."
	case KindIntegrity:
		return "The downloaded manifest is incomplete or invalid."
	case KindSetup:
		return "Something went wrong while setting up the manifest."
	default:
		return ""
	}
}
