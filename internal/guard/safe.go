package guard

import (
	"errors"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
)

// SafeFile 执行文件操作，将权限错误、系统错误及其他错误统一记录并返回 false。
func SafeFile(logger logrus.FieldLogger, operation string, fn func() error) bool {
	err := fn()
	if err == nil {
		return true
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	entry := logger.WithError(err).WithFields(logrus.Fields{
		"action":    "file_operation",
		"operation": operation,
	})

	var (
		pathErr    *fs.PathError
		linkErr    *os.LinkError
		syscallErr *os.SyscallError
	)
	switch {
	case errors.Is(err, fs.ErrPermission):
		entry.WithField("kind", "permission").Error("permission denied during file operation")
	case errors.As(err, &pathErr), errors.As(err, &linkErr), errors.As(err, &syscallErr):
		entry.WithField("kind", "os").Error("os error during file operation")
	default:
		entry.WithField("kind", "unexpected").Error("unexpected error during file operation")
	}
	return false
}
