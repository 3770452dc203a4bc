package build

import "errors"

var (
	ErrBuild               = errors.New("build failed")
	ErrCompile             = errors.New("compilation failed")
	ErrMissingArtifact     = errors.New("build artifact not found")
	ErrPackageInstall      = errors.New("package installation failed")
	ErrCopy                = errors.New("copy failed")
	ErrVerify              = errors.New("image verification failed")
	ErrFileSystemOperation = errors.New("file system operation failed")
)
