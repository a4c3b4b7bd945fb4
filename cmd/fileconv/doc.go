// Command fileconv uploads files to a conversion service, converts them to a
// chosen target format and downloads the result.
//
// One-shot commands (run, upload, convert, download) share progress through
// the local history database, so a file uploaded by one invocation can be
// converted by the next. The shell command keeps a single session open and
// accepts file paths dropped onto the terminal.
package main
