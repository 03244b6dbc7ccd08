package secretbin

// Options control a single submission.
type Options struct {
	// Password adds entropy to the encryption key on top of the random
	// base key. Recipients must enter it to decrypt. Optional.
	Password string

	// Expires is the id of one of the server's expiration options (see
	// Config.Expires). Empty selects the server's default.
	Expires string

	// BurnAfter deletes the secret after this many reads. 0 means no
	// limit; negative values are rejected.
	BurnAfter int
}
