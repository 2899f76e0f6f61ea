// Package cli implements the envfile command.
//
// Files are loaded in the order given and the first value for a key wins, so
// list overrides before defaults.
//
//	envfile get .env.local .env DATABASE_URL
//	envfile dump -format yaml .env
//	envfile check .env
//	envfile exec .env -- ./server --port 8080
//	envfile publish -redis redis://localhost:6379/0 -key app .env
//
// Run returns an *ExitError to choose the exit code: 1 for runtime failures
// such as a missing key or issues found by check, 2 for usage errors, and the
// child's status for exec.
package cli
