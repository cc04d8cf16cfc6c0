/*
Package mock provides a scripted xhr.Client.

Tests configure responses per method and URL with On(...).Return(...) or
On(...).ReturnError(...), fall back to a default response otherwise, and inspect the
recorded Calls. No network requests are made.
*/
package mock
