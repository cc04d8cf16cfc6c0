/*
Package vault simulates the "vault" secret lookup module.

Secrets configured through Config.Secrets are returned as-is. Any other non-empty key
resolves to the key itself, which lets handlers that only pass secrets through be tested
without configuring anything. Invalid keys reject with a bare string rather than an
Error object, matching the vendor module.
*/
package vault
