package services

// Labels of the notes created by the application itself.
const (
	NewLeafName = "New leaf"

	leafOneOf   = "Leaf one of "
	leafTwoOf   = "Leaf two of "
	sampleText1 = "This is a sample note. Write anything here; it is encrypted before it reaches the disk. Diary: "
	sampleText2 = "Notes can hold child notes. Use add to create one under the selected note. Diary: "
)
