package codec

// Basic returns an HTTP Basic authorization header value for the credentials.
func Basic(username, password string) string {
	return "Basic " + Btoa(username+":"+password)
}
