// Package errors provides the classified error primitives used across pwabuilder.
//
// A ClassifiedError carries a category (config, toolchain, filesystem, build, ...), a severity and
// structured context. Errors are created through the fluent ErrorBuilder:
//
//	err := errors.WrapError(cause, errors.CategoryFileSystem, "copy failed").
//		Warning().
//		WithContext("path", src).
//		Build()
//
// CLIErrorAdapter turns any error into the user-facing message and process exit code.
package errors
