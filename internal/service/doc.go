// Package service contains the application's use cases: registering and
// authenticating users, and the task operations that every caller must
// perform on behalf of a specific owner.
//
// Services depend on the store interfaces only. They add the rules that
// span more than one entity or call, such as hashing a password before a
// user is stored, and leave HTTP concerns to internal/api.
package service
