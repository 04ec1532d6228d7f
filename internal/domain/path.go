package domain

import "strings"

// IsJavaFile reports whether the path names a Java source file.
func IsJavaFile(path string) bool {
	return strings.HasSuffix(path, ".java")
}

// IsTestFile reports whether the path names a Java test file, either by
// the conventional Test/Tests suffix or by living under a test directory.
func IsTestFile(path string) bool {
	if strings.HasSuffix(path, "Test.java") || strings.HasSuffix(path, "Tests.java") {
		return true
	}
	for _, segment := range strings.Split(path, "/") {
		if segment == "test" || segment == "tests" {
			return true
		}
	}
	return false
}

// IsExportablePath reports whether changes to the path belong in the
// ground truth: production Java code only, no tests.
func IsExportablePath(path string) bool {
	return IsJavaFile(path) && !IsTestFile(path)
}
