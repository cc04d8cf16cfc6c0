/*
Package logging provides the log client behind the console global that handlers see.

Handlers running inside the harness write with console.log, console.info, console.warn,
console.error, console.debug and console.trace. Each call lands on a Client, which
forwards it to a zap logger named "console" and tagged with the handler path.

Usage

	client, err := logging.New(logging.Config{Logger: logger, Handler: "handler.js"})
	if err != nil {
	  // handle error
	}
	client.Info("hello")
*/
package logging
