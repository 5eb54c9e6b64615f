// Package webdriver implements a W3C WebDriver wire client. It speaks
// the remote-end HTTP protocol directly against a chromedriver,
// geckodriver, msedgedriver, safaridriver or Selenium Grid endpoint and
// exposes sessions through the browser.Session interface.
package webdriver
