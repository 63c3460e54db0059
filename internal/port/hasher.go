package port

type PasswordHasher interface {
	Hash(plaintext string) (string, error)

	// Check compares a stored hash against a plaintext candidate using a
	// constant-time primitive, never raw equality.
	Check(hash, plaintext string) bool
}
