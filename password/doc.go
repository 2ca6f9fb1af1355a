// Package password hashes and verifies user passwords for the reference user
// repository.
//
// # Algorithms
//
//   - [Argon2] (default) encodes hashes in PHC string format.
//     [Argon2.NeedsUpgrade] reports hashes produced with weaker parameters.
//   - [Bcrypt] produces standard $2a$ hashes.
//
// Both also satisfy [Upgrader], which callers use to re-hash after a
// successful Verify.
//
//
// [New] selects a [Hasher] by name. The argon2id format, with unpadded
// standard base64 salt and hash, is:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// # What this package must NOT do
//
//   - Store or retrieve passwords. Callers supply plaintext and receive hashes.
//   - Import any other goGate package.
//   - Log plaintext passwords or hash parameters at runtime.
package password
