package patch

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApply_ChangeLine(t *testing.T) {
	patches, err := Parse(simpleDiff)
	require.NoError(t, err)

	updated, err := Apply("a\nb\nc\n", patches[0])
	require.NoError(t, err)
	require.Equal(t, "a\nb\nd\n", updated)
}

func TestApply_NewFile(t *testing.T) {
	diff := `--- /dev/null
+++ b/test.py
@@ -0,0 +1 @@
+print(1)
\ No newline at end of file
`
	patches, err := Parse(diff)
	require.NoError(t, err)

	content, err := Apply("", patches[0])
	require.NoError(t, err)
	require.Equal(t, "print(1)", content)
}

func TestApply_NewFileWithTrailingNewline(t *testing.T) {
	diff := `--- /dev/null
+++ b/test.py
@@ -0,0 +1,2 @@
+print(1)
+print(2)
`
	patches, err := Parse(diff)
	require.NoError(t, err)

	content, err := Apply("", patches[0])
	require.NoError(t, err)
	require.Equal(t, "print(1)\nprint(2)\n", content)
}

func TestApply_InsertLines(t *testing.T) {
	diff := `--- a/f.txt
+++ b/f.txt
@@ -2,0 +3,2 @@
+x
+y
`
	patches, err := Parse(diff)
	require.NoError(t, err)

	updated, err := Apply("a\nb\nc\n", patches[0])
	require.NoError(t, err)
	require.Equal(t, "a\nb\nx\ny\nc\n", updated)
}

func TestApply_DeleteLines(t *testing.T) {
	diff := `--- a/f.txt
+++ b/f.txt
@@ -1,3 +1,1 @@
 a
-b
-c
`
	patches, err := Parse(diff)
	require.NoError(t, err)

	updated, err := Apply("a\nb\nc\nd\n", patches[0])
	require.NoError(t, err)
	require.Equal(t, "a\nd\n", updated)
}

func TestApply_MultipleHunksInOrder(t *testing.T) {
	diff := `--- a/f.txt
+++ b/f.txt
@@ -1,2 +1,2 @@
 one
-two
+TWO
@@ -5,2 +5,2 @@
 five
-six
+SIX
`
	patches, err := Parse(diff)
	require.NoError(t, err)

	original := "one\ntwo\nthree\nfour\nfive\nsix\nseven\n"
	updated, err := Apply(original, patches[0])
	require.NoError(t, err)
	require.Equal(t, "one\nTWO\nthree\nfour\nfive\nSIX\nseven\n", updated)
}

func TestApply_ContextMismatch(t *testing.T) {
	patches, err := Parse(simpleDiff)
	require.NoError(t, err)

	original := "a\nX\nc\n"
	updated, err := Apply(original, patches[0])
	require.Error(t, err)
	// The original content comes back unmodified
	require.Equal(t, original, updated)

	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	require.Equal(t, "a.py", applyErr.Path)
	require.Equal(t, 0, applyErr.HunkIndex)
	require.Equal(t, "b", applyErr.Expected)
	require.Equal(t, "X", applyErr.Found)
}

func TestApply_RemovedLineMismatch(t *testing.T) {
	patches, err := Parse(simpleDiff)
	require.NoError(t, err)

	_, err = Apply("a\nb\nZ\n", patches[0])
	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	require.Equal(t, "c", applyErr.Expected)
	require.Equal(t, "Z", applyErr.Found)
}

func TestApply_HunkPastEndOfFile(t *testing.T) {
	patches, err := Parse(simpleDiff)
	require.NoError(t, err)

	_, err = Apply("a\n", patches[0])
	var applyErr *ApplyError
	require.ErrorAs(t, err, &applyErr)
	require.Equal(t, "<end of file>", applyErr.Found)
}

func TestApply_PreservesMissingTrailingNewline(t *testing.T) {
	patches, err := Parse(simpleDiff)
	require.NoError(t, err)

	updated, err := Apply("a\nb\nc", patches[0])
	require.NoError(t, err)
	require.Equal(t, "a\nb\nd", updated)
}

// Round-trip: applying a parsed diff that exactly matches the original's
// context reproduces the target content
func TestApply_RoundTrip(t *testing.T) {
	original := "package main\n\nfunc main() {\n\tprintln(\"hello\")\n}\n"
	target := "package main\n\nfunc main() {\n\tprintln(\"goodbye\")\n}\n"
	diff := `--- a/main.go
+++ b/main.go
@@ -1,5 +1,5 @@
 package main

 func main() {
-	println("hello")
+	println("goodbye")
 }
`
	patches, err := Parse(diff)
	require.NoError(t, err)
	require.Len(t, patches, 1)

	updated, err := Apply(original, patches[0])
	require.NoError(t, err)
	require.Equal(t, target, updated)
}
