/*
Package codec implements the string codecs handlers require as "codec/base64",
"codec/query_string" and "codec/auth".

All functions are pure. Decoding is lenient in the same way the vendor runtime is: the
base64 decoder accepts both the standard and the URL-safe alphabet, tolerates missing
padding, and skips characters outside the alphabet, so DecodeString(EncodeString(s))
returns s for every s.

Stringify and Parse follow the bracket conventions handlers expect from the
query_string module (a[b]=c for nested objects, a[0]=x for arrays). Use Object when the
field order of the output matters; plain maps are encoded in sorted key order.
*/
package codec
