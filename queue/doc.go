/*
Package queue defines the independent model-fit tasks a grid search is
made of, as well as an interface for a Queue to manage them.

It also provides an in-memory implementation of the Queue interface.
*/
package queue
