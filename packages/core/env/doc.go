// Package env resolves {{variable}} placeholders in scenario steps.
//
// Variables come from the environment configuration, data-row columns,
// and the process environment ({{$VAR}} syntax). Unresolved placeholders
// are left intact and reported through the warn function.
package env
