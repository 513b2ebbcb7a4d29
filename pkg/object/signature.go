package object

// CommitSigningPayload returns the canonical bytes that are signed for a
// commit. The payload excludes the signature field itself; the commit id is
// computed afterwards over the payload plus the signature.
func CommitSigningPayload(c *CommitObj) []byte {
	if c == nil {
		return nil
	}
	copyCommit := *c
	copyCommit.Signature = ""
	return MarshalCommit(&copyCommit)
}
