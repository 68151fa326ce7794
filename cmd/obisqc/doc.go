// Command obisqc runs taxonomic quality control of Darwin Core occurrence
// records against the WoRMS backbone.
package main
