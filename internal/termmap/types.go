package termmap

// TermMap maps a term name to its value in one language.
type TermMap map[string]string

// Message keys looked up by the command line front end.
const (
	KeyTitleDirectory    = "TitleDirectory"
	KeyTitleFileName     = "TitleFileName"
	KeyTitleParse        = "TitleParse"
	KeyTitleSave         = "TitleSave"
	KeyEmptyDirectory    = "EmptyDirectory"
	KeyDirectoryNotFound = "DirectoryNotFound"
	KeyEmptyFileName     = "EmptyFileName"
	KeyParseFailed       = "ParseFailed"
	KeyReadFailed        = "ReadFailed"
	KeySaveFailed        = "SaveFailed"
	KeyOverwriteDeclined = "OverwriteDeclined"
	KeyOverwriteConfirm  = "OverwriteConfirm"
	KeySearchOver        = "SearchOver"
	KeyFilesMatched      = "FilesMatched"
	KeyTermsMerged       = "TermsMerged"
	KeySaved             = "Saved"
	KeyNoFinding         = "NoFinding"
	KeyFindings          = "Findings"
)
