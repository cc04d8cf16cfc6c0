/*
Package transform rewrites handler source into CommonJS that the harness can bind.

Handlers are usually written as ES modules (export default, import ... from "kvstore").
The embedded engine only understands scripts, so every handler is passed through a
Transformer before it is compiled. The default implementation, ESBuild, uses esbuild to
convert module syntax into CommonJS require/module.exports while leaving the rest of
the language untouched.

Callers can substitute any Transformer, including a plain function via Func.
*/
package transform
