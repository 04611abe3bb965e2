// Package scraper provides an authenticated HTTP session for provider portals
// that only offer a browser login.
//
// A Session fetches the portal's login page, fills in the first form found
// on it, submits the form without following redirects and checks that the
// expected session cookies were issued. Later requests through the same
// Session carry those cookies.
package scraper
