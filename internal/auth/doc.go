// Package auth authenticates teachers for the commentbank API.
//
// Two modes are supported through AUTH_MODE:
//   - "none": every request acts as IMPORT_DEFAULT_TEACHER_ID (default)
//   - "local": teacher accounts with bcrypt passwords, scs cookie sessions
//     for browsers and sha256-hashed bearer tokens for scripts and the CLI
//
// Cookie sessions are protected by gorilla/csrf; the token is fetched from
// GET /api/auth/csrf and sent back in the X-CSRF-Token header. Requests with
// a valid bearer token skip the CSRF check.
//
// Handlers read the teacher with:
//
//	teacherID := auth.GetTeacherID(c)
package auth
