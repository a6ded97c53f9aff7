package vkcore

import (
	"fmt"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Kind tells an environment problem apart from a caller bug.
type Kind int

const (
	// KindFatal errors leave rendering state unusable. The application is expected
	// to log and terminate, see Logs.Fatal.
	KindFatal Kind = iota
	// KindRecoverable errors are logged and left to the caller's discretion.
	KindRecoverable
	// KindContract errors are misuse of an API by the caller.
	KindContract
)

func (k Kind) String() string {
	switch k {
	case KindFatal:
		return "fatal"
	case KindRecoverable:
		return "recoverable"
	case KindContract:
		return "contract violation"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error is returned by every operation of the core that can fail.
type Error struct {
	Kind Kind
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	msg := e.Op
	if e.Path != "" {
		msg += " " + e.Path
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

var (
	ErrNoDevices             = errors.New("failed to find GPUs with Vulkan support")
	ErrNoSuitableDevice      = errors.New("failed to find a suitable GPU")
	ErrMissingExtensions     = errors.New("required extensions are not available")
	ErrNoMemoryType          = errors.New("failed to find suitable memory type")
	ErrUnsupportedTransition = errors.New("unsupported layout transition")
	ErrUnsupportedFormat     = errors.New("unsupported pixel format")
	ErrCapacityExceeded      = errors.New("not enough memory was allocated to store images")
	ErrNotInitialized        = errors.New("device has not been initialized")
	ErrAlreadyRecording      = errors.New("command buffer is already recording")
	ErrNotRecording          = errors.New("command buffer is not recording")
	ErrNotRecorded           = errors.New("command buffer has no finished recording to submit")
	ErrFenceNotWaited        = errors.New("command buffer reused before its fence was waited on")
	ErrMeshLoaded            = errors.New("mesh already has buffers allocated")
	ErrNoPipeline            = errors.New("renderer has no pipeline to draw with")
	ErrOutOfDate             = errors.New("swapchain is out of date")
	ErrInvalidSize           = errors.New("invalid resource size")
)

func isError(ret vk.Result) bool {
	return ret != vk.Success
}

// NewError converts a Vulkan result into an error carrying the caller's stack.
// Success converts to nil.
func NewError(ret vk.Result) error {
	if !isError(ret) {
		return nil
	}
	err := vk.Error(ret)
	if err == nil {
		err = fmt.Errorf("result %d", ret)
	}
	return errors.Wrapf(err, "vulkan error (%d)", ret)
}

// IsFatal reports whether err is, or wraps, a fatal core error.
func IsFatal(err error) bool {
	return kindOf(err) == KindFatal
}

// IsRecoverable reports whether err is, or wraps, a recoverable core error.
func IsRecoverable(err error) bool {
	return kindOf(err) == KindRecoverable
}

// IsContract reports whether err is, or wraps, a contract violation.
func IsContract(err error) bool {
	return kindOf(err) == KindContract
}

func kindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return -1
}

func contractError(op string, err error) error {
	return &Error{Kind: KindContract, Op: op, Err: err}
}

func checkErr(err *error) {
	if v := recover(); v != nil {
		*err = fmt.Errorf("%+v", v)
	}
}
