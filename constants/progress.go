package constants

// Progress checkpoints reported while a document moves through extraction.
const (
	ProgressUploadStart     = 10
	ProgressUploaded        = 30
	ProgressExtractStart    = 40
	ProgressExtracted       = 70
	ProgressParsed          = 80
	ProgressCleanedUp       = 85
	ProgressEnhanceStart    = 87
	ProgressEnhanceResponse = 95
	ProgressDone            = 100
)
